// Package w5500 binds an SPI bus and a chip-select line to a WIZnet W5500
// Ethernet controller.
//
// The core of the package is the Adapter, which turns a platform HAL into the
// Transport callbacks the register layer needs: enter and exit a critical
// section, select and deselect the chip, and move single bytes or bursts over
// SPI. Dev is the register layer itself. It frames every access in the
// variable length data mode (VDM) of the W5500 SPI protocol.
//
// Three HAL backends are provided: periph.io connections for Linux hosts,
// tinygo.org/x/drivers buses for microcontrollers, and the MCP2210 USB to SPI
// bridge over HID.
//
// Copyright (c) 2022 Northvolt AB and the w5500 authors.
//
// # Datasheets
//
// The W5500 datasheet and the ioLibrary driver are published by WIZnet.
// https://docs.wiznet.io/Product/iEthernet/W5500/datasheet
package w5500
